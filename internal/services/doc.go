// Package services holds cross-cutting helpers shared by the pipeline's
// external collaborators: sentinel errors for failure classification and
// context annotation helpers that feed structured logging.
package services
