// Package core provides the CSV column selection pipeline.
//
// This package contains all domain logic independent of any UI or transport
// layer. The CLI, the HTTP front-end and tests all drive the same [Pipeline].
//
// # Pipeline
//
// A [Pipeline] holds an ordered list of output columns (empty means "all
// columns, input order") and at most one transformer per column:
//
//	p := core.New().
//	    SetOutputColumns("name", "email").
//	    AddTransformer("name", transform.Upper())
//	res, err := p.Process(ctx, "in.csv", "out.csv", "utf-8")
//
// Process runs in four steps:
//
//  1. Open the input, decode it, and skip a leading byte order mark
//  2. Read the header and check every configured column exists in it
//  3. Create the output and write the header
//  4. Project, transform and write each data row
//
// The output file is not touched until step 2 succeeds.
//
// # Errors
//
// Validation failures are typed: [MissingHeaderError] (also matched by
// errors.Is(err, [ErrMissingHeader])), [UnknownColumnError] carrying every
// missing name, [FileAccessError] and [EncodingError]. [MapError] turns any
// error into a [UserMessage] with a support code.
//
// # Profiles
//
// A [Profile] stores a column selection and transformer assignments in YAML
// so a recurring job can be re-run with `csvcut --profile FILE`.
package core
