// Package brainlift is the read-only client for the BrainLift REST API.
// It maps transport and HTTP failures to typed errors and leaves payload
// shaping to the tool layer.
package brainlift
