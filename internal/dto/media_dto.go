package dto

// FileNode is a file leaf inside the media folder tree.
type FileNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// FolderNode is a folder in the media folder tree.
type FolderNode struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Subfolders []*FolderNode `json:"subfolders"`
	Files      []FileNode    `json:"files"`
}

// VideoListResponse lists asset URLs under a module prefix.
type VideoListResponse struct {
	Videos []string `json:"videos"`
}

// UploadResponse is returned after a successful media upload.
type UploadResponse struct {
	URL string `json:"url"`
}
