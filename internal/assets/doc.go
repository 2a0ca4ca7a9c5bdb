// Package assets stores binary files (images pasted into notes) inside a
// vault.
//
// Every asset lives at <vault>/.taskdown/assets/<name> and is addressed as
// asset://localhost/<name>. Writer.Save keeps only the base name of the
// requested file name and refuses to write anywhere that resolves, after
// following symlinks, outside the assets directory:
//
//	w := assets.NewWriter(log)
//	url, err := w.Save("../../etc/passwd", data, vault)
//	// writes <vault>/.taskdown/assets/passwd, url == "asset://localhost/passwd"
//
// Uploader adds the editor's image rules on top: a size limit, a fixed set
// of formats and a generated file name.
package assets
