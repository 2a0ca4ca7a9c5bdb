// Package vault manages the on-disk layout of a taskdown vault.
//
// A vault is any directory the user picks. taskdown keeps its own files in
// a hidden folder inside it:
//
//	<vault>/.taskdown/config.json   vault settings (theme, reminder time)
//	<vault>/.taskdown/data.db       SQLite database
//	<vault>/.taskdown/assets/       images and other attachments
//
// Manager.Open creates the layout, points the connection registry at
// data.db and brings the schema up to date. Schema changes are numbered
// migrations recorded in the migrations table; they run through the SQL
// bridge one statement at a time.
package vault
