// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the error notice published when a snapshot cannot be
// produced.
package model

// ErrorNotice is published in place of a snapshot.
type ErrorNotice struct {
	Message string `json:"message"`
}

// NewErrorNotice wraps err for publication.
func NewErrorNotice(err error) ErrorNotice {
	return ErrorNotice{Message: err.Error()}
}
