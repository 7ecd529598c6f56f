package telegram

// ClampPage folds any requested page into [1, pages]. A collection
// with no pages still has page 1 so titles always render.
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
