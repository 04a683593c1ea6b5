// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videotext

import "fmt"

// ImageFormat selects the on-wire encoding of panel frames.
type ImageFormat int

const (
	// PNG is lossless and small for computer-drawn text, making it
	// the default.
	PNG ImageFormat = iota
	// JPEG is offered for clients that cannot display PNG streams.
	JPEG
)

// DefaultFormat is used when neither Options.Format nor the request
// URL selects a format.
const DefaultFormat = PNG

var formats = map[ImageFormat]struct {
	name string
	mime string
}{
	PNG:  {"png", "image/png"},
	JPEG: {"jpeg", "image/jpeg"},
}

func (f ImageFormat) String() string {
	if fi, ok := formats[f]; ok {
		return fi.name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

func (f ImageFormat) mimeType() string {
	if fi, ok := formats[f]; ok {
		return fi.mime
	}
	return "application/octet-stream"
}

// ParseFormat maps a "format" URL parameter to an ImageFormat.
func ParseFormat(value string) (ImageFormat, error) {
	switch value {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return DefaultFormat, fmt.Errorf("videotext: unrecognized image format %q", value)
}
