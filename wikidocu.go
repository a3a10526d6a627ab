// Package wikidocu answers natural-language questions about local files and
// fetched web pages without building an index. Instead of embeddings, a
// language model is asked, per document, which line ranges are relevant to
// the question. The matched spans become numbered citations that a second
// model pass turns into the final answer.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, trafilatura/) or
// the concern they orchestrate (scan/, chat/, crawl/).
package wikidocu
