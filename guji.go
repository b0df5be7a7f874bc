// Package guji discovers and extracts the full text of multi-chapter
// classical texts published on content-management sites whose structure
// is undocumented and may change without notice.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package guji
