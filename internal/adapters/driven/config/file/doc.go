// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the docask config directory (~/.docask).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable LLM prompt templates
//   - RegistryStore: the user and folder registry, reloaded on change
package file
