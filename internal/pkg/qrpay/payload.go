package qrpay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// The payload is a plain URL to the mobile payment form for one request.
// Any phone that scans the code lands on the form for exactly that row, so
// the path segment is the request's own ID.
const payloadPathPrefix = "/pay/requests/"

var ErrInvalidPayload = errors.New("payload does not reference a payment request")

// EncodePayload builds the scannable payload for a request ID.
func EncodePayload(baseURL string, requestID uint) string {
	return strings.TrimRight(baseURL, "/") + payloadPathPrefix + strconv.FormatUint(uint64(requestID), 10)
}

// DecodePayload extracts the request ID a payload was issued for.
func DecodePayload(payload string) (uint, error) {
	idx := strings.LastIndex(payload, payloadPathPrefix)
	if idx < 0 {
		return 0, ErrInvalidPayload
	}
	raw := payload[idx+len(payloadPathPrefix):]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad id segment %q", ErrInvalidPayload, raw)
	}
	return uint(id), nil
}
