package logging

// Field names shared by all components so log output can be filtered consistently.
const (
	FieldFile       = "file_path"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldReason     = "reason"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
	FieldStage      = "stage"
	FieldStrategy   = "strategy"
	FieldLine       = "line"
	FieldLineNumber = "line_number"
	FieldAmount     = "amount"
	FieldCurrency   = "currency"
	FieldCategory   = "category"
	FieldKeyword    = "keyword"
	FieldRate       = "rate"
	FieldSource     = "source"
	FieldModel      = "model"
	FieldDropped    = "dropped"
	FieldConfidence = "confidence"
	FieldPattern    = "pattern"
	FieldPage       = "page"
	FieldDelimiter  = "delimiter"
	FieldHTTPMethod = "method"
	FieldHTTPPath   = "path"
	FieldHTTPStatus = "http_status"
)
