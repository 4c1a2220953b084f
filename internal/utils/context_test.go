// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestGetRequestIDFromContext_Success(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDCtxKey, "req-42")

	requestID, ok := GetRequestIDFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if requestID != "req-42" {
		t.Errorf("expected requestID=req-42, got %s", requestID)
	}
}

func TestGetRequestIDFromContext_Missing(t *testing.T) {
	requestID, ok := GetRequestIDFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if requestID != "" {
		t.Errorf("expected empty requestID, got %s", requestID)
	}
}

func TestGetRequestIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDCtxKey, int64(7))

	_, ok := GetRequestIDFromContext(ctx)

	if ok {
		t.Fatal("expected ok=false for wrong type, got true")
	}
}
