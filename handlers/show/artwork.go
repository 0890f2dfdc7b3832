package show

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/showlog-io/showlog/models"
)

type ArtworkFormat string

const (
	ArtworkFormatJPEG ArtworkFormat = "jpg"
)

const (
	ArtworkJPEGQuality = 85
	ArtworkMaxWidth    = 1920
)

type ArtworkArgs struct {
	showID int64
	width  int
	format ArtworkFormat
}

func (s *Handler) bindArtworkArgs(c *gin.Context) (*ArtworkArgs, error) {
	showID, err := strconv.ParseInt(c.Param("show_id"), 10, 64)
	if err != nil {
		return nil, errors.Errorf("wrong show id %v", c.Param("show_id"))
	}
	file := c.Param("file")
	fileParts := strings.Split(file, ".")
	if len(fileParts) != 2 {
		return nil, errors.Errorf("wrong file format %v", file)
	}
	width, err := strconv.Atoi(fileParts[0])
	if err != nil || width <= 0 || width > ArtworkMaxWidth {
		return nil, errors.Errorf("wrong width %v", fileParts[0])
	}
	f := ArtworkFormat(fileParts[1])
	if f != ArtworkFormatJPEG {
		return nil, errors.Errorf("wrong format %v", f)
	}
	return &ArtworkArgs{
		showID: showID,
		width:  width,
		format: f,
	}, nil
}

// artwork serves the show's catalogue image resized to the requested
// width, cached in S3 when configured.
func (s *Handler) artwork(c *gin.Context) {
	args, err := s.bindArtworkArgs(c)
	if err != nil {
		log.WithError(err).Error("failed to bind artwork args")
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()

	db := s.pg.Get()
	if db == nil {
		log.Error("no db")
		c.Status(http.StatusInternalServerError)
		return
	}

	b, err := s.getResizedJPEGArtworkWithCache(ctx, db, args)
	if errors.Is(err, errNoArtwork) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to get resized artwork")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	etag := s.generateETag(b.Bytes())
	if match := c.Request.Header.Get("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Length", strconv.Itoa(b.Len()))
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)

	_, _ = io.Copy(c.Writer, b)
}

var errNoArtwork = errors.New("show has no artwork")

func (s *Handler) generateETag(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf(`"%x"`, sum[:])
}

func (s *Handler) getResizedArtwork(ctx context.Context, db *pg.DB, args *ArtworkArgs) (*image.NRGBA, error) {
	show, err := models.GetShowByID(ctx, db, args.showID)
	if err != nil {
		return nil, err
	}
	if show == nil || show.ImageURL == nil {
		return nil, errNoArtwork
	}

	req, err := http.NewRequestWithContext(ctx, "GET", *show.ImageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.cl.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	return imaging.Resize(srcImg, args.width, 0, imaging.Lanczos), nil
}

func (s *Handler) getResizedJPEGArtworkWithCache(ctx context.Context, db *pg.DB, args *ArtworkArgs) (*bytes.Buffer, error) {
	if s.s3Cl == nil {
		return s.getResizedJPEGArtwork(ctx, db, args)
	}
	cl := s.s3Cl.Get()
	b, err := s.getArtworkFromCache(ctx, cl, args)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	b, err = s.getResizedJPEGArtwork(ctx, db, args)
	if err != nil {
		return nil, err
	}
	if err := s.putArtworkToCache(ctx, cl, args, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Handler) getResizedJPEGArtwork(ctx context.Context, db *pg.DB, args *ArtworkArgs) (*bytes.Buffer, error) {
	r, err := s.getResizedArtwork(ctx, db, args)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, r, &jpeg.Options{Quality: ArtworkJPEGQuality}); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (s *ArtworkArgs) Key() string {
	return fmt.Sprintf("show/%v/%v.%v", s.showID, s.width, s.format)
}

func (s *Handler) getArtworkFromCache(ctx context.Context, s3Cl *s3.S3, args *ArtworkArgs) (*bytes.Buffer, error) {
	r, err := s3Cl.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.artworkCacheBucket),
		Key:    aws.String(args.Key()),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, nil
		}
		return nil, err
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(r.Body)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (s *Handler) makeAWSMD5(b []byte) *string {
	h := md5.Sum(b)
	m := base64.StdEncoding.EncodeToString(h[:])
	return aws.String(m)
}

func (s *Handler) putArtworkToCache(ctx context.Context, s3Cl *s3.S3, args *ArtworkArgs, b *bytes.Buffer) (err error) {
	data := b.Bytes()
	_, err = s3Cl.PutObjectWithContext(ctx,
		&s3.PutObjectInput{
			Bucket:     aws.String(s.artworkCacheBucket),
			Key:        aws.String(args.Key()),
			Body:       bytes.NewReader(data),
			ContentMD5: s.makeAWSMD5(data),
		})
	return
}
