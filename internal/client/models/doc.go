// Package models defines the client-side data shapes exchanged with the
// DKT Learn backend: credentials, the identity decoded from them, community
// posts and replies, and user/profile payloads. JSON tags follow the
// backend's wire names.
package models
