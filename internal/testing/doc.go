// Package testing provides test utilities, fakes, and builders shared by unit tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - FakeRunner: scripted shell.Runner that records every command
//   - FakeServices: recording fakes for every provisioning collaborator,
//     sharing one ordered call log
//   - MockPrompter, MockProbe: testify mocks for input and precondition probes
//   - RequestBuilder: fluent builder for provisioning requests
//
// Usage:
//
//	fakes := testing.NewFakeServices().FailOn("proxy.ValidateConfig", errBadConfig)
//	req := testing.NewRequestBuilder().WithDomain("тест.site").Build()
package testing
