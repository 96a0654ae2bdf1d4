package export

import (
	"html/template"
	"io"
)

// Word export is an HTML document served with the application/msword
// content type, which Word opens as a styled document. The correct
// answer is shown only for questions answered wrong.
var wordTmpl = template.Must(template.New("word").Parse(`<html>
  <head>
    <meta charset="utf-8">
    <title>Quiz Results</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 20px; }
      .header { text-align: center; margin-bottom: 30px; }
      .summary { background-color: #f5f5f5; padding: 15px; margin-bottom: 20px; }
      .question { margin-bottom: 20px; padding: 15px; border: 1px solid #ddd; }
      .correct { background-color: #d4edda; }
      .incorrect { background-color: #f8d7da; }
      .explanation { background-color: #e9ecef; padding: 10px; margin-top: 10px; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1>Quiz Results</h1>
    </div>

    <div class="summary">
      <h2>Summary</h2>
      <p><strong>Score:</strong> {{.Correct}} / {{.Total}} ({{.Percentage}}%)</p>
      <p><strong>Status:</strong> {{if .Passed}}PASSED{{else}}FAILED{{end}}</p>
    </div>

    <h2>Detailed Results</h2>
{{range .Rows}}
    <div class="question {{if .IsCorrect}}correct{{else}}incorrect{{end}}">
      <h3>Question {{.Number}} (Page {{.Page}})</h3>
      <p><strong>Question:</strong> {{.QuestionText}}</p>
      <p><strong>Your Answer:</strong> {{.SelectedText}}</p>
      {{if not .IsCorrect}}<p><strong>Correct Answer:</strong> {{.CorrectText}}</p>{{end}}
      <p><strong>Result:</strong> {{if .IsCorrect}}Correct &#10003;{{else}}Wrong &#10007;{{end}}</p>
      {{if .Explanation}}<div class="explanation"><strong>Explanation:</strong> {{.Explanation}}</div>{{end}}
    </div>
{{end}}
  </body>
</html>
`))

// WriteWord renders the snapshot as the Word-compatible HTML document.
func WriteWord(w io.Writer, snap Snapshot) error {
	return wordTmpl.Execute(w, snap)
}
