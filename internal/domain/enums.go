package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeODT  FileType = "odt"
	FileTypeDOC  FileType = "doc"
	FileTypeRTF  FileType = "rtf"
	FileTypeTXT  FileType = "txt"
	FileTypeXLSX FileType = "xlsx"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeGIF  FileType = "gif"
	FileTypeBMP  FileType = "bmp"
	FileTypeTIFF FileType = "tiff"
	FileTypeWEBP FileType = "webp"
)

// Media types understood by the text extractor.
const (
	MediaTypePDF   = "application/pdf"
	MediaTypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeODT   = "application/vnd.oasis.opendocument.text"
	MediaTypeDOC   = "application/msword"
	MediaTypeRTF   = "application/rtf"
	MediaTypeText  = "text/plain"
	MediaTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeJPEG  = "image/jpeg"
	MediaTypePNG   = "image/png"
	MediaTypeGIF   = "image/gif"
	MediaTypeBMP   = "image/bmp"
	MediaTypeTIFF  = "image/tiff"
	MediaTypeWEBP  = "image/webp"
	MediaTypeOctet = "application/octet-stream"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  MediaTypePDF,
	FileTypeDOCX: MediaTypeDOCX,
	FileTypeODT:  MediaTypeODT,
	FileTypeDOC:  MediaTypeDOC,
	FileTypeRTF:  MediaTypeRTF,
	FileTypeTXT:  MediaTypeText,
	FileTypeXLSX: MediaTypeXLSX,
	FileTypeJPG:  MediaTypeJPEG,
	FileTypePNG:  MediaTypePNG,
	FileTypeGIF:  MediaTypeGIF,
	FileTypeBMP:  MediaTypeBMP,
	FileTypeTIFF: MediaTypeTIFF,
	FileTypeWEBP: MediaTypeWEBP,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"docx": FileTypeDOCX,
	"odt":  FileTypeODT,
	"doc":  FileTypeDOC,
	"rtf":  FileTypeRTF,
	"txt":  FileTypeTXT,
	"text": FileTypeTXT,
	"md":   FileTypeTXT,
	"xlsx": FileTypeXLSX,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"gif":  FileTypeGIF,
	"bmp":  FileTypeBMP,
	"tif":  FileTypeTIFF,
	"tiff": FileTypeTIFF,
	"webp": FileTypeWEBP,
}

// QuestionType is the answer shape an admin configured for a question.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeUpload         QuestionType = "upload"
	QuestionTypeLink           QuestionType = "link"
)

// Bucket is the classification outcome for a question.
type Bucket string

const (
	BucketAutoFill     Bucket = "auto_fill"
	BucketAISuggestion Bucket = "ai_suggestion"
	BucketNoMatch      Bucket = "no_match"
)

// AnswerSource records which path produced an answer.
type AnswerSource string

const (
	SourceDocumentParsing AnswerSource = "document_parsing"
	SourceAIGeneration    AnswerSource = "ai_generation"
	SourceFallback        AnswerSource = "fallback"
)

// InferredType is the profile area a question was matched to.
type InferredType string

const (
	InferredSkills         InferredType = "skills"
	InferredEducation      InferredType = "education"
	InferredExperience     InferredType = "experience"
	InferredCareerGoals    InferredType = "career_goals"
	InferredCertifications InferredType = "certifications"
	InferredLanguages      InferredType = "languages"
	InferredLinks          InferredType = "links"
	InferredFileUpload     InferredType = "file_upload"
	InferredGeneral        InferredType = "general"
)

// DocumentKind hints the entity extractor about what a document is.
type DocumentKind string

const (
	KindResume      DocumentKind = "resume"
	KindCertificate DocumentKind = "certificate"
	KindTranscript  DocumentKind = "transcript"
)
