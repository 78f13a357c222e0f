// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds all conversation and message state for a session.
//
// The store is the single authoritative container for conversations and
// messages. It is mutated exclusively through a closed set of actions
// applied via Dispatch; reads return defensive copies so callers can never
// mutate state directly. One store is constructed per session and passed
// explicitly to its consumers - there is no package-level singleton.
//
// Dispatch applies one action to completion before the next is accepted
// (single-writer model). No action fails: actions targeting unknown ids
// are no-ops by contract.
package store
