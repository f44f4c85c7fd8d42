package domain

// ImageState tracks two-phase creation: a document is inserted first and its
// image URL is attached once the upload completes.
type ImageState string

const (
	ImageStateCreated  ImageState = "created"
	ImageStateAttached ImageState = "image_attached"
)

var validImageTransitions = map[ImageState][]ImageState{
	ImageStateCreated: {ImageStateAttached},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ImageState) CanTransitionTo(next ImageState) bool {
	for _, allowed := range validImageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Ready reports whether the image has been attached.
func (s ImageState) Ready() bool {
	return s == ImageStateAttached
}

// Image is an uploaded file waiting to be stored.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Object storage folders.
const (
	FolderProfileImages     = "umai-profile-img"
	FolderRecipeImages      = "umai-recipe-img"
	FolderInstructionImages = "umai-instruction-img"
	FolderPostImages        = "umai-post-img"
)
