package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
)

// BlobItem is one entry of a flat storage listing.
type BlobItem struct {
	Name string
	URL  string
}

// BuildFolderTree turns a flat blob listing into a nested folder tree.
// Each name is split on "/"; the last segment becomes a file in the folder
// named by the preceding segments. Names without a folder part are skipped,
// as are duplicate file names within one folder.
func BuildFolderTree(items []BlobItem) []*dto.FolderNode {
	root := make([]*dto.FolderNode, 0)

	for _, item := range items {
		parts := strings.Split(item.Name, "/")
		if len(parts) < 2 {
			continue
		}

		fileName := parts[len(parts)-1]
		folders := parts[:len(parts)-1]
		level := &root

		for index, part := range folders {
			folder := findFolder(*level, part)
			if folder == nil {
				folder = &dto.FolderNode{
					ID:         uuid.NewString(),
					Name:       part,
					Subfolders: make([]*dto.FolderNode, 0),
					Files:      make([]dto.FileNode, 0),
				}
				*level = append(*level, folder)
			}

			if index == len(folders)-1 {
				if !hasFile(folder.Files, fileName) {
					folder.Files = append(folder.Files, dto.FileNode{
						ID:   uuid.NewString(),
						Name: fileName,
						Path: item.Name,
						URL:  item.URL,
					})
				}
			} else {
				level = &folder.Subfolders
			}
		}
	}

	return root
}

// FilterRoots keeps only the top-level folders with the given name.
func FilterRoots(folders []*dto.FolderNode, name string) []*dto.FolderNode {
	filtered := make([]*dto.FolderNode, 0, len(folders))
	for _, folder := range folders {
		if folder.Name == name {
			filtered = append(filtered, folder)
		}
	}

	return filtered
}

func findFolder(level []*dto.FolderNode, name string) *dto.FolderNode {
	for _, folder := range level {
		if folder.Name == name {
			return folder
		}
	}

	return nil
}

func hasFile(files []dto.FileNode, name string) bool {
	for _, file := range files {
		if file.Name == name {
			return true
		}
	}

	return false
}
