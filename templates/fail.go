package templates

// Fail is the content block of error pages.  It is executed with the status
// code, its text, and the message of the error.
var Fail = `
{{ define "content" }}
<div class="ui negative message">
	<div class="header">{{ .StatusCode }} {{ .StatusText }}</div>
	<p>{{ .Message }}</p>
</div>
<a class="ui basic button" href="/">Back to the form</a>
{{ end }}
`
