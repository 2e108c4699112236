package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"doc-splitter/pkg/models"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// WriteOutline renders a section tree as a text outline with tree-drawing
// prefixes, rooted at label. Sections with an empty heading (the level-0
// root aside) are shown as "(untitled)".
func WriteOutline(w io.Writer, root *models.Section, label string) error {
	if _, err := fmt.Fprintf(w, "%s\n", label); err != nil {
		return err
	}
	return writeOutlineChildren(w, root, "")
}

func writeOutlineChildren(w io.Writer, s *models.Section, prefix string) error {
	for i, child := range s.Children {
		connector := entryPrefix
		childPrefix := prefix + verticalLine
		if i == len(s.Children)-1 {
			connector = lastEntryPrefix
			childPrefix = prefix + indentPrefix
		}
		heading := child.Heading
		if heading == "" {
			heading = "(untitled)"
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, connector, heading); err != nil {
			return err
		}
		if err := writeOutlineChildren(w, child, childPrefix); err != nil {
			return err
		}
	}
	return nil
}

// SaveOutline writes the outline for a section tree to outputFilePath.
func SaveOutline(root *models.Section, label, outputFilePath string, log *logrus.Entry) error {
	file, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("%w: failed to create outline file '%s': %v", ErrFilesystem, outputFilePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	log.Debugf("Writing section outline to %s", outputFilePath)
	return WriteOutline(writer, root, label)
}
