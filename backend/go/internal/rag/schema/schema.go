package schema

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "file_name"
	// MetadataKeyPageLabel is the key for the page number of a PDF page.
	MetadataKeyPageLabel = "page_label"
	// MetadataKeySourceURL is the key for the URL a web document was fetched from.
	MetadataKeySourceURL = "source_url"
	// MetadataKeyChunkNumber is the 1-based position of a chunk inside its source document.
	MetadataKeyChunkNumber = "chunk_number"
	// MetadataKeyOriginalDocID links a chunk to the document it was split from.
	MetadataKeyOriginalDocID = "original_doc_id"
)

// Document is the central data structure representing a piece of text and its associated data.
// It is the primary data carrier throughout the retrieval pipeline.
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Text is the string content of the document chunk.
	Text string

	// Embedding is the vector representation of the text, filled only by embedding rankers.
	Embedding []float32

	// Score is the relevance assigned by the last ranker that saw this document.
	Score float64

	// Metadata holds arbitrary data about the document, such as file_name and page_label.
	Metadata map[string]interface{}
}

// Label returns a short human readable source reference for prompts.
func (d *Document) Label() string {
	name, _ := d.Metadata[MetadataKeyFileName].(string)
	if url, ok := d.Metadata[MetadataKeySourceURL].(string); ok && name == "" {
		name = url
	}
	if page, ok := d.Metadata[MetadataKeyPageLabel].(string); ok && page != "" {
		return name + " p." + page
	}
	return name
}
