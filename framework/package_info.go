// Package framework contains the test harness infrastructure that the API scenarios run on.
//
// The general model is:
//
// 1. GlobalSetup resolves the configuration once and builds two immutable contracts: the
// request contract (JSON content type and accept headers, a request ID, trace context, and
// capture of the exchange into the test's debug output) and the response contract (logging
// of every response).
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. A failure stops only the test it happened in.
//
// 3. For each test, Harness.NewSession builds a fresh httpexpect client from the stored
// contracts. Tests never share transport state, so they can run in any order or in
// parallel with identical outcomes.
//
// Every failure has a FailureKind, which distinguishes a timeout or an unreachable server
// from a response that broke the contract, had an unparseable body, or could not be bound
// to the model.
//
// The domain-specific code that knows what is being tested provides the scenarios and a
// domain-specific test API on top of the test context.
package framework
