// Package project tracks which files belong to a COLT project.
//
// A WorkingSet lists the projects the user has opened in COLT and is
// persisted as YAML. A project's main HTML document can override the
// project root and project file with meta tags:
//
//	<meta name="colt:root" content="..">
//	<meta name="colt:project" content="site.colt">
package project
