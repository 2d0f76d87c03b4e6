package models

import (
	"fmt"
	"regexp"
	"strings"
)

// ConvertedExtension is the extension of the artifact the conversion service
// writes next to each source material.
const ConvertedExtension = ".md"

// Course material objects live at <courseId>/materials/<fileName>.<ext>.
// Neither segment may contain a slash; anything else in the bucket is not a
// course material and is ignored by the triggers.
var materialPathPattern = regexp.MustCompile(`^([^/]+)/materials/([^/]+)\.([a-zA-Z0-9]+)$`)

// MaterialPath is a parsed course material object path.
type MaterialPath struct {
	CourseID  string
	FileName  string // base name without extension
	Extension string // without the leading dot
}

// ParseMaterialPath parses objectPath against the course material layout.
// The second return value is false for objects that are not course materials.
func ParseMaterialPath(objectPath string) (MaterialPath, bool) {
	m := materialPathPattern.FindStringSubmatch(objectPath)
	if m == nil {
		return MaterialPath{}, false
	}
	return MaterialPath{CourseID: m[1], FileName: m[2], Extension: m[3]}, true
}

// MaterialObjectPath returns the storage path for a material. The path is a
// pure function of course and file name so that re-uploading the same file
// lands on the same object, which is what makes overwrite detection work.
func MaterialObjectPath(courseID, fileName string) string {
	return fmt.Sprintf("%s/materials/%s", courseID, fileName)
}

// ConvertedSiblingPath returns the path of the converted artifact that sits
// next to objectPath. The second return value is false when objectPath has no
// extension or already carries the converted extension.
func ConvertedSiblingPath(objectPath string) (string, bool) {
	if strings.HasSuffix(objectPath, ConvertedExtension) {
		return "", false
	}
	dot := strings.LastIndex(objectPath, ".")
	if dot == -1 {
		return "", false
	}
	return objectPath[:dot] + ConvertedExtension, true
}

// GCSUri renders the fully qualified gs:// reference for an object.
func GCSUri(bucket, objectPath string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, objectPath)
}
