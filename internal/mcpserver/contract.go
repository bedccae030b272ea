package mcpserver

// FrontmatterContract describes the canonical frontmatter format that LLM
// consumers should follow when creating or fixing corpus documents.
const FrontmatterContract = `# Frontmatter Contract

Every Markdown document in the corpus MUST carry a YAML frontmatter block.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # REQUIRED - non-empty string
category: security                  # REQUIRED - one of the configured categories
type: howto                         # REQUIRED - howto|reference|concept|tutorial|explanation
tags:                               # OPTIONAL - YAML list of strings
  - tls
  - hardening
status: stable                      # OPTIONAL - stable|draft|deprecated
updated: 2026-01-15                 # REQUIRED - ISO-8601 date (YYYY-MM-DD)
version: 1.2.0                      # OPTIONAL - MAJOR.MINOR.PATCH
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **The ` + "`---`" + ` fences must open and close.** An opening delimiter
   without a closing one is a load error.
2. **` + "`updated`" + ` is always required.** Staleness checking depends on it.
3. **Unknown extra fields are allowed** and preserved; they never fail
   validation.
4. **Cross-references** use either markdown links ending in ` + "`.md`" + ` or
   bullet entries in a "Related Documents" section:

` + "```" + `markdown
## Related Documents

- ref-security-checklist.md - Security audit checklist
- @seo/ref-technical-seo.md - Technical SEO reference
` + "```" + `

   A bare filename must be unique in the corpus; if two files share a
   basename, qualify the reference with its directory (the checker reports
   the ambiguity otherwise).
5. **File paths** end with ` + "`.md`" + ` and use forward slashes.
`
