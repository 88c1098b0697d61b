package blog

// DefaultPosts is the built-in post list served when no CMS feed is
// configured or the feed cannot be read.
func DefaultPosts() []Post {
	return []Post{
		Normalize(CMSPost{
			Slug:        "what-is-a-ghost-job",
			Title:       "What is a ghost job?",
			Description: "Postings that stay online long after a role is filled, and how to spot them before you apply.",
			PublishedAt: "2025-11-04",
			Tags:        []string{"ghost jobs", "job search"},
			Content: []ContentBlock{
				{Type: "paragraph", Text: "A ghost job is a listing that is still visible but no longer backed by an open role."},
				{Type: "paragraph", Text: "Age is the simplest signal. A posting that has not changed in three months deserves a second look."},
			},
		}),
		Normalize(CMSPost{
			Slug:        "how-the-checker-scores-postings",
			Title:       "How the checker scores postings",
			Description: "The freshness bands behind the probability score, and what each signal means.",
			PublishedAt: "2026-01-20",
			UpdatedAt:   "2026-03-02",
			Tags:        []string{"methodology"},
			Content: []ContentBlock{
				{Type: "paragraph", Text: "Pages updated within 45 days score 85. Pages updated within 90 days score 55. Older or undated pages score 25."},
			},
			Methodology: []string{
				"Read the Last-Modified header of the posting page.",
				"Bucket its age into fresh, aging or stale.",
				"Flag pages that no longer answer with HTTP 200.",
			},
		}),
	}
}
