// Package export encodes generated entities and delivers them.
//
// A Document wraps one batch. It is encoded as JSON or YAML and written to
// stdout, a file, or an S3 object:
//
//	w, err := export.Open(ctx, "s3://fixtures/users.yaml", export.S3Options{Region: "eu-west-1"})
//	doc := export.NewDocument("user", items, true)
//	err = export.Write(ctx, w, export.FormatYAML, doc)
//
// Fields tagged json:"-" and yaml:"-", such as password hashes, are never
// exported.
package export
