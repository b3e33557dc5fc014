// Package maven models Maven coordinates and the local repository layout.
//
// A [Dependency] renders to the resolver's textual form
// ("g:a:jar:1.0 (compile)"), which conflict winner metadata is compared
// against. [LocalRepository] maps artifacts to their archive and descriptor
// paths; [ReadProject] reads the coordinates and build output directory of a
// pom.xml.
package maven
