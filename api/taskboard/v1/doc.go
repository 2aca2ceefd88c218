// Package taskboardv1 holds the messages exchanged by the taskboard.v1
// services. They travel as JSON (see pkg/jsoncodec); field names follow the
// lowerCamelCase convention of protobuf JSON.
package taskboardv1

// RoleHeader selects which of the caller's roles a request acts as.
const RoleHeader = "X-Taskboard-Role"
