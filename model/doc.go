// Package model defines the provider-agnostic abstractions for talking to a
// hosted response model inside turnstream.
//
// Core goals:
//   - Keep the outgoing Request minimal, serializable and transport independent
//   - Expose a stream as an ordered, pull based event sequence (Stream)
//   - Drive a stream through lifecycle Callbacks with poll based cancellation
//   - Facilitate lightweight scripting for tests (ScriptedStreamer)
//
// Providers (see model/openai) implement Streamer so the orchestrator stays
// decoupled from vendor SDKs.
package model
