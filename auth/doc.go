// Package auth implements the account lifecycle for the directory API:
// signup normalization and validation, password hashing, session token
// issuance, and the one-time verification side effects that follow a new
// account's first persist.
//
// Account creation:
//   - CreateAccountHandler runs the pipeline in explicit stages (normalize,
//     validate, hash, persist, post-process). Validation is driven by the
//     AccountConstraints table rather than storage-layer hooks, and the
//     post-process stage is handed to a Dispatcher so the HTTP response
//     never waits on the verification token record or the email.
//   - Email uniqueness is settled by the database constraint; a duplicate
//     insert surfaces as a field-keyed validation error on email.
//
// Authentication:
//   - Auther verifies credentials against the explicitly fetched password
//     hash and mints 30-day HS256 session tokens carrying the account's
//     identifier, email, and names.
package auth
