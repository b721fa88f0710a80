package core

import "errors"

// Error taxonomy for a pipeline run. Callers match with errors.Is.
var (
	// ErrGeneration means the text-generation service exhausted its retries
	// or kept returning unusable output. Nothing is published.
	ErrGeneration = errors.New("generation failed")

	// ErrValidation means a generated payload was missing required fields or
	// violated a local constraint.
	ErrValidation = errors.New("validation failed")

	// ErrUpload means the featured image could not be uploaded. No post is created.
	ErrUpload = errors.New("image upload failed")

	// ErrPublish means the post could not be created on the CMS.
	ErrPublish = errors.New("publish failed")

	ErrInvalidKeyword = errors.New("invalid keyword")
	ErrNoKeywords     = errors.New("no keywords found")
)
