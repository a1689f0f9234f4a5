// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer pipeline is split into small components that are each
// testable on their own: QueryNormalizer, ScopeResolver, SelectExcerpt,
// Aggregate and Synthesizer. AnswerService composes them.
package services
