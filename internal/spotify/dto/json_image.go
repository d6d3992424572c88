package dto

// JSONImage is an image object as returned by the Web API.
type JSONImage struct {
	URL    string `json:"url"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
}

func (ji JSONImage) area() int {
	if ji.Width == nil || ji.Height == nil {
		return 0
	}
	return *ji.Width * *ji.Height
}

// LargestImage returns the URL of the image with the largest area. Images
// without dimensions rank lowest; the first one wins ties. It returns ""
// for an empty list.
func LargestImage(images []JSONImage) string {
	best := -1
	for i, img := range images {
		if img.URL == "" {
			continue
		}
		if best < 0 || img.area() > images[best].area() {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return images[best].URL
}
