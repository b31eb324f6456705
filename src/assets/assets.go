package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// The subset of the S3 client used here.
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var client objectStore = newClient(config.Config.S3)

func newClient(cfg config.S3Config) *s3.Client {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: cfg.Endpoint,
			}, nil
		})),
	)
	if err != nil {
		panic(err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

const MaxUploadSize = 20 * 1024 * 1024

const maxUploadAttempts = 4

type CreateInput struct {
	Content     []byte
	Filename    string
	ContentType string // sniffed from Content when empty

	UploaderID *int
}

var REIllegalFilenameChars = regexp.MustCompile(`[^\w\-.]`)

func SanitizeFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "unnamed"
	}
	return REIllegalFilenameChars.ReplaceAllString(filename, "_")
}

func AssetKey(id, filename string) string {
	return fmt.Sprintf("%s/%s", id, filename)
}

func PublicURL(key string) string {
	return config.Config.S3.PublicUrl + "/" + key
}

type InvalidAssetError struct {
	Reason string
}

func (e InvalidAssetError) Error() string {
	return e.Reason
}

// Returns 0, 0 for content that is not a recognized image format.
func ImageDimensions(content []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

/*
Uploads content to the bucket and records it in the asset table. The object
key is "<asset id>/<sanitized filename>". Image dimensions are filled in
automatically for the formats image.DecodeConfig understands.
*/
func Create(ctx context.Context, dbConn db.ConnOrTx, in CreateInput) (*models.Asset, error) {
	filename := SanitizeFilename(in.Filename)

	if len(in.Content) == 0 {
		return nil, InvalidAssetError{fmt.Sprintf("could not upload asset '%s': no bytes of data were provided", filename)}
	}
	if len(in.Content) > MaxUploadSize {
		return nil, InvalidAssetError{fmt.Sprintf("could not upload asset '%s': file is larger than %d MB", filename, MaxUploadSize/1024/1024)}
	}
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(in.Content)
	}

	id := uuid.New()
	key := AssetKey(id.String(), filename)
	checksum := fmt.Sprintf("%x", sha1.Sum(in.Content))
	width, height := ImageDimensions(in.Content)

	if err := uploadObject(ctx, key, in.Content, contentType); err != nil {
		return nil, err
	}

	asset, err := db.QueryOne[models.Asset](ctx, dbConn,
		`
		---- Save asset
		INSERT INTO asset (id, s3_key, filename, size, mime_type, sha1sum, width, height, uploader_id)
		VALUES            ($1, $2,     $3,       $4,   $5,        $6,      $7,    $8,     $9)
		RETURNING $columns
		`,
		id,
		key,
		filename,
		len(in.Content),
		contentType,
		checksum,
		width,
		height,
		in.UploaderID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to save asset record")
	}

	return asset, nil
}

func Fetch(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) (*models.Asset, error) {
	return db.QueryOne[models.Asset](ctx, dbConn,
		`
		---- Fetch asset
		SELECT $columns
		FROM asset
		WHERE id = $1
		`,
		id,
	)
}

// Deletes the stored object and then the row. Content rows referencing the
// asset have their reference cleared by the foreign keys.
func Delete(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) error {
	asset, err := Fetch(ctx, dbConn, id)
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(config.Config.S3.Bucket),
		Key:    aws.String(asset.S3Key),
	})
	if err != nil {
		return oops.New(err, "failed to delete asset object")
	}

	_, err = dbConn.Exec(ctx, "DELETE FROM asset WHERE id = $1", id)
	if err != nil {
		return oops.New(err, "failed to delete asset record")
	}
	return nil
}

/*
Puts an object, creating the bucket if it does not exist yet. Network errors
and server-side faults are retried with exponential backoff; client errors
fail immediately.
*/
func uploadObject(ctx context.Context, key string, content []byte, contentType string) error {
	bucket := config.Config.S3.Bucket
	upload := func() error {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(content),
			ACL:         types.ObjectCannedACLPublicRead,
			ContentType: aws.String(contentType),
		})
		return err
	}

	boff := backoff.Backoff{
		Min:    200 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
	}
	createdBucket := false

	var err error
	for attempt := 1; attempt <= maxUploadAttempts; attempt++ {
		err = upload()
		if err == nil {
			return nil
		}

		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" && !createdBucket {
			_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: aws.String(bucket),
			})
			if err != nil {
				return oops.New(err, "failed to create assets bucket")
			}
			createdBucket = true
			continue
		}

		if !isRetryable(err) || attempt == maxUploadAttempts {
			break
		}

		wait := boff.Duration()
		logging.ExtractLogger(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Str("key", key).
			Msg("Asset upload failed, retrying")
		if err := utils.SleepContext(ctx, wait); err != nil {
			return oops.New(err, "asset upload canceled")
		}
	}

	return oops.New(err, "failed to upload asset")
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		return apiError.ErrorFault() == smithy.FaultServer
	}
	return true
}
