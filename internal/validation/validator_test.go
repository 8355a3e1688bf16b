// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package validation

import (
	"strings"
	"testing"
)

type interactionRequest struct {
	UserID int64 `validate:"required,gt=0"`
	ItemID int64 `validate:"required,gt=0"`
}

type preferencesRequest struct {
	UserID int64    `validate:"required,gt=0"`
	Genres []string `validate:"required,min=1,dive,min=1"`
}

type algoRequest struct {
	Algo string `validate:"oneof=bfs ppr"`
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := interactionRequest{UserID: 7, ItemID: 101}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid struct, got: %v", err)
	}
}

func TestValidateStructRequired(t *testing.T) {
	t.Parallel()

	req := interactionRequest{UserID: 7}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for missing ItemID")
	}
	if !strings.Contains(err.Error(), "ItemID") {
		t.Errorf("expected ItemID in error, got: %v", err)
	}
}

func TestValidateStructNegativeID(t *testing.T) {
	t.Parallel()

	req := interactionRequest{UserID: -1, ItemID: 101}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for negative UserID")
	}
	if !strings.Contains(err.Error(), "greater than") {
		t.Errorf("expected gt message, got: %v", err)
	}
}

func TestValidateStructOneof(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&algoRequest{Algo: "bfs"}); err != nil {
		t.Errorf("bfs should be valid: %v", err)
	}
	if err := ValidateStruct(&algoRequest{Algo: "ppr"}); err != nil {
		t.Errorf("ppr should be valid: %v", err)
	}

	err := ValidateStruct(&algoRequest{Algo: "pagerank"})
	if err == nil {
		t.Fatal("expected oneof violation")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("expected oneof message, got: %v", err)
	}
}

func TestValidateStructCollectsMultipleErrors(t *testing.T) {
	t.Parallel()

	req := interactionRequest{}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(err.Errors()))
	}
	for _, fe := range err.Errors() {
		if fe.Field() == "" || fe.Tag() == "" {
			t.Errorf("expected populated field/tag, got %+v", fe)
		}
	}
}

func TestValidateStructGenresDive(t *testing.T) {
	t.Parallel()

	req := preferencesRequest{UserID: 7, Genres: []string{"Sci-Fi", "Crime"}}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid genres, got: %v", err)
	}

	req = preferencesRequest{UserID: 7, Genres: []string{}}
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for empty genre list")
	}

	req = preferencesRequest{UserID: 7, Genres: []string{""}}
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for empty genre name")
	}
}

func TestValidateStructNonStruct(t *testing.T) {
	t.Parallel()

	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if len(err.Errors()) != 1 || err.Errors()[0].Field() != "unknown" {
		t.Errorf("expected single unknown-field error, got %+v", err.Errors())
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("expected the same validator instance")
	}
}
