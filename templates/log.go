package templates

// LogView lists the submissions of the user, newest last.
const LogView = `
{{ define "content" }}
<h2 class="ui header">Submissions</h2>
<table class="ui unstackable celled table">
	<thead>
		<tr>
			<th class="two wide">Job</th>
			<th class="six wide">Submission</th>
			<th class="four wide">Submitted</th>
			<th class="four wide">Status</th>
		</tr>
	</thead>
	<tbody>
		{{ range $job := . }}
			<tr {{ if $job.Error }}class="negative"{{ end }}>
				<td>J{{ $job.ID }}</td>
				<td><a href="/log/{{ $job.ID }}">{{ $job.Label }}</a></td>
				<td>{{ $job.SubmitTime.Format "2006-01-02 15:04:05" }}</td>
				<td>
					{{ if not $job.IsFinished }}In queue
					{{ else if $job.Error }}Failed {{ $job.EndTime.Format "15:04:05" }}
					{{ else }}Done {{ $job.EndTime.Format "15:04:05" }}{{ end }}
				</td>
			</tr>
		{{ else }}
			<tr><td colspan="4">Nothing submitted yet.</td></tr>
		{{ end }}
	</tbody>
</table>
{{ end }}
`
