// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model defines the payloads the engine publishes: the snapshot of
// the current planetary hour with its decorated content, and the error
// notice sent when a snapshot cannot be produced.
//
// # Core Concepts
//
//   - Snapshot: everything the display needs for one refresh. It carries the
//     solar boundaries of the day, the weekday profile with its resolved
//     day-level citations, the active and upcoming hours, and the raw
//     content resources the display may browse.
//
//   - DecoratedHour: a planetary hour joined with the focus area it serves,
//     the content chosen for that area and the sigil of its angel.
//
//   - ErrorNotice: the single-field message published instead of a
//     snapshot when configuration or computation fails.
//
// The JSON field names are the wire contract with the display and must not
// change without updating it.
package model
