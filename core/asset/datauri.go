package asset

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedDataURI is returned by DecodeDataURI for input that is not a
// data URI.
var ErrMalformedDataURI = errors.New("malformed data URI")

// EncodeDataURI returns data as a base64 data URI.
func EncodeDataURI(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI into its media type and payload. Both
// base64 and percent-encoded payloads are accepted; a missing media type
// defaults to text/plain as in RFC 2397.
func DecodeDataURI(uri string) (string, []byte, error) {
	if Classify(uri) != KindDataURI {
		return "", nil, ErrMalformedDataURI
	}
	header, payload, ok := strings.Cut(strings.TrimSpace(uri)[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrMalformedDataURI)
	}

	isBase64 := false
	params := strings.Split(header, ";")
	if n := len(params); n > 1 && strings.EqualFold(params[n-1], "base64") {
		isBase64 = true
		params = params[:n-1]
	}
	mediaType := strings.Join(params, ";")
	if params[0] == "" {
		mediaType = "text/plain" + mediaType
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
			}
		}
		return mediaType, data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return mediaType, []byte(data), nil
}
