package index

// Page is one page of a loaded source document.
type Page struct {
	Source string
	Page   int
	Text   string
}

// Chunk is one indexed piece of text with its embedding vector. Chunks that
// come from Q&A files carry the question/answer metadata; PDF chunks carry
// source and page.
type Chunk struct {
	ID        string
	Source    string
	Page      int
	Text      string
	Question  string
	Answer    string
	Embedding []float64
}
