package document

import "github.com/mdchunk/mdchunk/internal/outline"

// ContentType classifies the dominant content of a chunk.
type ContentType string

const (
	ContentProse     ContentType = "prose"
	ContentTable     ContentType = "table"
	ContentList      ContentType = "list"
	ContentCodeBlock ContentType = "code_block"
	ContentHeading   ContentType = "heading"
	ContentMixed     ContentType = "mixed"
)

// Metadata carries document-level properties from the extraction step.
type Metadata struct {
	Title            string `json:"title,omitempty"`
	Author           string `json:"author,omitempty"`
	Subject          string `json:"subject,omitempty"`
	CreationDate     string `json:"creation_date,omitempty"`
	ModificationDate string `json:"modification_date,omitempty"`
	PageCount        int    `json:"page_count"`
	SourceFile       string `json:"source_file,omitempty"`
}

// Chunk is a sized segment of the cleaned document with structural context.
// Chunks are emitted in reading order; ChunkIndex is assigned over the whole
// document after segmentation.
type Chunk struct {
	Content          string      `json:"content"`
	SectionPath      []string    `json:"section_path"`
	SectionLevel     int         `json:"section_level"`
	PageNumber       int         `json:"page_number"`
	ContentType      ContentType `json:"content_type"`
	PrecedingSection string      `json:"preceding_section,omitempty"`
	FollowingSection string      `json:"following_section,omitempty"`
	HasTables        bool        `json:"has_tables"`
	HasCodeBlocks    bool        `json:"has_code_blocks"`
	ChunkIndex       int         `json:"chunk_index"`
	WordCount        int         `json:"word_count"`
	SemanticLabels   []string    `json:"semantic_labels,omitempty"`
}

// Result is the full outcome of processing one document.
type Result struct {
	Markdown string          `json:"markdown"`
	Outline  []outline.Entry `json:"outline,omitempty"`
	Metadata Metadata        `json:"metadata"`
	Chunks   []Chunk         `json:"chunks,omitempty"`
}
