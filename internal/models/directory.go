package models

type DirectoryQuery struct {
	Search string
	Page   int
}

// DirectoryPage is one page of the user directory. Count is the total
// number of matches across all pages.
type DirectoryPage struct {
	Count    int
	Page     int
	PageSize int
	Results  []UserSummary
}

func (p *DirectoryPage) HasNext() bool {
	return p.Page*p.PageSize < p.Count
}

func (p *DirectoryPage) HasPrevious() bool {
	return p.Page > 1
}
