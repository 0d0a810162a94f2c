// Package skills provides the bioclaw skill system: declarative skills
// defined in JSONC files or SKILL.md frontmatter that wrap external
// bioinformatics tools. Skills declare the file extensions and query
// keywords they handle; the router uses those declarations to dispatch
// incoming requests.
package skills
