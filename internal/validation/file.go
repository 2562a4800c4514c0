package validation

import (
	"fmt"
	"path"
	"strings"
)

// ImageExtensions lists the photo formats clients may upload for memories.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
}

// PhotoKey checks that an object key points into the room's folder and names
// an image. Clients upload directly to the bucket under rooms/{roomID}/.
func PhotoKey(roomID, key string) error {
	prefix := "rooms/" + roomID + "/"
	if !strings.HasPrefix(key, prefix) {
		return fmt.Errorf("photo key must start with %s", prefix)
	}
	if strings.Contains(key, "..") || path.Clean(key) != key {
		return fmt.Errorf("photo key is not a clean path")
	}
	ext := strings.ToLower(path.Ext(key))
	if !ImageExtensions[ext] {
		return fmt.Errorf("unsupported photo type: %s", ext)
	}
	return nil
}
