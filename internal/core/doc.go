// Package core provides the business logic for test-case management.
//
// This package holds all domain logic independent of any UI or transport
// layer. The web server and the casectl CLI both drive it through [Service].
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Paste Parser: [ParsePasted] turns rows copied from a spreadsheet into
//     [TestCaseRecord] values.
//   - Normalizers: [MapStatus], [MapExecutionType] and [MapTestType] reduce
//     free text to the closed vocabularies the tracker accepts.
//   - Workspace: per-session state (selected parent, staged import, edit
//     target) kept in a bounded [WorkspaceStore].
//   - Service: the entry point for every operation; it talks to the external
//     backend through the [Tracker] interface.
//   - Evidence Guard: [EvidenceGuard] allows one evidence log to be processed
//     at a time.
//
// # Bulk Import
//
// A bulk import runs in two steps so the user can review the rows first:
//
//  1. [Service.PreviewImport] parses the text and stages the result in the workspace
//  2. [Service.FillGrid] hands the staged records to the editable grid
//  3. [Service.ExportGrid] sends the edited rows to the tracker in one request
//
// Parsing a paste never fails hard. Empty input and input without a titled
// row are reported as warnings ([ErrNoInput], [ErrNoValidRows]).
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - INP001-INP005: Input warnings and errors (empty paste, nothing staged, size)
//   - VAL001-VAL004: Validation errors (required fields, issue keys, parent, edit target)
//   - TRK001-TRK003: Tracker errors (unavailable, not found, rejected)
//   - EVD001-EVD003: Evidence errors (busy, file type, missing file)
package core
