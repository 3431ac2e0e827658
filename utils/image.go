package utils

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"

	"github.com/google/uuid"
	color_extractor "github.com/marekm4/color-extractor"
)

// BytesToGUIDLocation derives a stable, content-addressed serving path
// for an encoded thumbnail so identical frames land on identical URLs.
func BytesToGUIDLocation(image []byte, extension string) (string, uuid.UUID) {
	imageHash := md5.Sum(image)
	var genericBytes []byte = imageHash[:] // Disgusting :)
	guid, _ := uuid.FromBytes(genericBytes)
	location := fmt.Sprintf("/thumbs/cover.%s.%s", guid, extension)
	return location, guid
}

// ExtractColours pulls the dominant colours out of a frame for use as a
// tile placeholder while the full image loads.
func ExtractColours(img image.Image) []string {
	var domColours []string
	for _, c := range color_extractor.ExtractColors(img) {
		domColours = append(domColours, colorToHexString(c))
	}
	return domColours
}

func colorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}
