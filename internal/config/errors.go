// Package config provides configuration types and defaults for panostitch.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidAlgorithm indicates an unknown stitching algorithm name.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")

	// ErrInvalidImageType indicates an image type other than jpg or png.
	ErrInvalidImageType = errors.New("invalid image type")

	// ErrInvalidOutputSize indicates a malformed or partial WxH value.
	ErrInvalidOutputSize = errors.New("invalid output size")

	// ErrInvalidFrameIndex indicates a malformed frame index sequence.
	ErrInvalidFrameIndex = errors.New("invalid frame index")

	// ErrInvalidAccessoryType indicates a negative camera accessory type.
	ErrInvalidAccessoryType = errors.New("invalid camera accessory type")

	// ErrMissingSDKPath indicates the SDK directory is not set.
	ErrMissingSDKPath = errors.New("SDK path not set")

	// ErrUploadNotConfigured indicates an upload bucket without an endpoint.
	ErrUploadNotConfigured = errors.New("upload not configured")
)
