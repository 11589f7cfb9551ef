package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg" // For encoding thumbnails
	"log"
	"path"
	"strings"

	_ "image/gif" // Register decoders for the formats image ingest accepts
	_ "image/png"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/config"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/email"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/storage"
)

// Task type names.
const (
	TypeImageThumbnail = "image:thumbnail"
	TypeFeedbackNotify = "feedback:notify"
)

// ImageThumbnailPayload asks the image worker to derive a thumbnail for an
// already-ingested image.
type ImageThumbnailPayload struct {
	ImageRef string `json:"image_ref"`
}

// FeedbackNotifyPayload asks the background worker to email a car's owner
// about new feedback.
type FeedbackNotifyPayload struct {
	CarID          string `json:"car_id"`
	SubmitterEmail string `json:"submitter_email"`
	Comment        string `json:"comment"`
}

// NewImageThumbnailTask builds the asynq task for thumbnail generation.
func NewImageThumbnailTask(imageRef string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageThumbnailPayload{ImageRef: imageRef})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageThumbnail, payload, asynq.Queue("images")), nil
}

// NewFeedbackNotifyTask builds the asynq task for owner notification.
func NewFeedbackNotifyTask(carID, submitterEmail, comment string) (*asynq.Task, error) {
	payload, err := json.Marshal(FeedbackNotifyPayload{
		CarID:          carID,
		SubmitterEmail: submitterEmail,
		Comment:        comment,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeFeedbackNotify, payload), nil
}

// NewClient creates an asynq client sharing the Redis connection settings.
func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg           *config.Config
	emailSender   email.Sender
	blobStore     storage.BlobStore
	carService    services.ICarService
	sellerService services.ISellerService
}

// NewTaskProcessor creates a TaskProcessor with its dependencies.
func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	blobStore storage.BlobStore,
	carService services.ICarService,
	sellerService services.ISellerService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:           cfg,
		emailSender:   emailSender,
		blobStore:     blobStore,
		carService:    carService,
		sellerService: sellerService,
	}
}

// SetupServer configures and returns an Asynq server instance for the
// requested worker mode, or nil when neither worker mode is active.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 3,
				"images":  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypeFeedbackNotify, processor.HandleFeedbackNotifyTask)
		log.Println("Registered background task handlers.")
	}

	if isImageWorker {
		mux.HandleFunc(TypeImageThumbnail, processor.HandleImageThumbnailTask)
		log.Println("Registered image processing task handlers.")
	}

	if !isBgWorker && !isImageWorker {
		log.Println("Running in API mode, no task server started.")
		return nil, nil
	}

	return srv, mux
}

// thumbKey derives the thumbnail blob key from the original image key:
// assets/img/cars/<hash>.<ext> -> assets/img/cars/thumbs/<hash>.jpg
func thumbKey(imageRef string) string {
	dir, file := path.Split(imageRef)
	base := strings.TrimSuffix(file, path.Ext(file))
	return path.Join(dir, "thumbs", base+".jpg")
}

// HandleImageThumbnailTask loads the original image, scales it down and
// stores the thumbnail next to it. Re-running the task is harmless: the
// thumbnail key is derived from the content-addressed original.
func (p *TaskProcessor) HandleImageThumbnailTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal thumbnail payload: %v: %w", err, asynq.SkipRetry)
	}

	data, err := p.blobStore.Get(ctx, payload.ImageRef)
	if err != nil {
		return fmt.Errorf("failed to load image %s: %w", payload.ImageRef, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Undecodable bytes will not improve on retry.
		return fmt.Errorf("failed to decode image %s: %v: %w", payload.ImageRef, err, asynq.SkipRetry)
	}

	dim := uint(p.cfg.ThumbMaxDimension)
	thumb := resize.Thumbnail(dim, dim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail for %s: %w", payload.ImageRef, err)
	}

	key := thumbKey(payload.ImageRef)
	if err := p.blobStore.Put(ctx, key, "image/jpeg", buf.Bytes()); err != nil {
		return fmt.Errorf("failed to store thumbnail %s: %w", key, err)
	}

	log.Printf("Thumbnail %s generated for %s", key, payload.ImageRef)
	return nil
}

// HandleFeedbackNotifyTask emails the owner of a car about new feedback. A
// car or owner deleted since enqueue is not an error worth retrying.
func (p *TaskProcessor) HandleFeedbackNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload FeedbackNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal feedback notify payload: %v: %w", err, asynq.SkipRetry)
	}

	car, err := p.carService.FindByID(ctx, payload.CarID)
	if err != nil {
		log.Printf("Feedback notify: car %s no longer available: %v", payload.CarID, err)
		return nil
	}
	owner, err := p.sellerService.FindByID(ctx, car.SellerID)
	if err != nil {
		log.Printf("Feedback notify: owner %s no longer available: %v", car.SellerID, err)
		return nil
	}

	subject := fmt.Sprintf("New feedback on your %s %s", car.CompanyName, car.Model)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour listing %s %s (%d) received feedback:\n\n%s\n\nReply to: %s\n",
		owner.FirstName, car.CompanyName, car.Model, car.Year, payload.Comment, payload.SubmitterEmail,
	)
	msg := email.BuildMessage(p.cfg.SmtpFromAddress, []string{owner.Email}, subject, body)

	if err := p.emailSender.Send(ctx, []string{owner.Email}, subject, msg); err != nil {
		return fmt.Errorf("failed to send feedback notification for car %s: %w", payload.CarID, err)
	}
	return nil
}
