// Package mocks provides test doubles for ports interfaces.
//
// These mocks are designed to be simple, thread-safe, in-memory implementations
// suitable for unit testing. Each mock provides:
//
//   - Default behavior backed by in-memory maps
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Helper methods for setting state directly
//
// # Usage Example
//
//	func TestSelector(t *testing.T) {
//		providers := mocks.NewProviderRepository()
//		providers.Add(domain.ProviderConfig{Name: "default", Type: domain.ProviderOpenAI})
//
//		selector := llm.NewSelector(providers, nil, llm.NewMemorySuspensionStore(), llm.NewRotationState(), &logger)
//		// ... test selection behavior
//	}
//
// # Available Mocks
//
//   - ProviderRepository: implements ports.ProviderRepository
//   - PromptRepository: implements ports.PromptRepository
//   - ProjectStore: implements the project, key, language, translation and metadata ports
//   - ScreenshotStore: implements ports.ScreenshotStore
//   - PlaygroundRepository: implements ports.PlaygroundRepository
//   - UsageStore: implements ports.UsageStore
package mocks
