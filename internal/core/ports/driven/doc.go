// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RegistryStore: Users, folders and weights as an immutable snapshot
//   - TextExtractor: Turns raw bytes into text; never fails
//   - Connector: Searches one source for documents within a scope group
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RemoteStore: Hierarchical document store (Google Drive). Without it,
//     scope groups contain only their root id and only local files are searched.
//   - LLMService: Language model completions. Without it, answers are extractive.
//   - KnowledgeStore: Static product/vendor definitions. Without it, the
//     normaliser skips entity lookup and empty searches answer "nothing found".
//   - ProfileStore: Per-user answer personalisation.
//   - PromptStore: Customisable system instructions.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
