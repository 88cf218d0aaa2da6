package templates

// Form renders a nested form: one segment per section, with the field errors
// of the last submission under each input.
const Form = `
{{ define "content" }}
			<div class="ginform">
				<div class="ui middle very relaxed page grid">
					<div class="column">
						<form class="ui form" action="/" method="post">
							<input type="hidden" name="_csrf" value="">
							<h3 class="ui top attached header">
								{{.name}}
							</h3>
							{{if .invalid}}
								<div class="ui attached error message">
									Please correct the {{.invalid}} field(s) below.
								</div>
							{{end}}
							{{range $sidx, $sec := .sections}}
								<div class="ui attached segment" {{if $sec.Key}}id="section-{{$sec.Key}}"{{end}}>
									{{if $sec.Key}}
										<h4 class="ui dividing header">{{$sec.Name}}{{if $sec.Required}} (required){{end}}</h4>
										{{if $sec.RequiredKey}}<p class="help">Only checked when <code>{{$sec.RequiredKey}}</code> is set.</p>{{end}}
									{{end}}
									{{if $sec.Description}}<p>{{$sec.Description}}</p>{{end}}
									{{range $msg := $sec.Errors}}
										<div class="ui error message">{{$msg}}</div>
									{{end}}
									{{range $idx, $elem := $sec.Elements}}
										<div class="inline {{if $elem.Required}}required{{end}} field {{if $elem.Errors}}error{{end}}">
											<label for="{{$elem.ID}}">{{$elem.Label}}</label>
											{{if eq $elem.Type "textarea"}}
												<textarea id="{{$elem.ID}}" name="{{$elem.HTMLName}}" {{if $elem.Required}}required{{end}} {{if or $elem.ReadOnly $.readonly}}readonly{{end}}>{{$elem.Value}}</textarea>
											{{else if eq $elem.Type "select"}}
												<select id="{{$elem.ID}}" name="{{$elem.HTMLName}}" {{if $elem.Required}}required{{end}} {{if or $elem.ReadOnly $.readonly}}disabled{{end}}>
													{{range $opt := $elem.ValueList}}
														<option value="{{$opt}}" {{if eq $opt $elem.Value}}selected{{end}}>{{$opt}}</option>
													{{end}}
												</select>
											{{else if eq $elem.Type "checkbox"}}
												<input id="{{$elem.ID}}" name="{{$elem.HTMLName}}" type="checkbox" value="on" {{if $elem.Checked}}checked{{end}} {{if or $elem.ReadOnly $.readonly}}disabled{{end}}>
											{{else}}
												<input id="{{$elem.ID}}" name="{{$elem.HTMLName}}" type="{{$elem.Type}}" value="{{$elem.Value}}" {{if $elem.ValueList}}list="{{$elem.ID}}-list"{{end}} {{if $elem.Required}}required{{end}} {{if or $elem.ReadOnly $.readonly}}readonly{{end}}>
												{{if $elem.ValueList}}
													<datalist id="{{$elem.ID}}-list">
														{{range $opt := $elem.ValueList}}<option value="{{$opt}}">{{end}}
													</datalist>
												{{end}}
											{{end}}
											<span class="help">{{$elem.Description}}</span>
											{{range $msg := $elem.Errors}}
												<div class="ui pointing red basic label">{{$msg}}</div>
											{{end}}
										</div>
									{{end}}
								</div>
							{{end}}
							<div class="ui bottom attached segment">
								{{if not .readonly}}
									<div class="inline field">
										<label></label>
										<button class="ui green button">Submit</button>
									</div>
								{{end}}
								{{if .submit_time}}
									<div>
										Submitted {{.submit_time}}
									</div>
									<div>
										{{if .end_time}}
											Finished {{.end_time}}
										{{else}}
											In queue
										{{end}}
									</div>
								{{end}}
								{{range $msg := .messages}}
									<div>
										{{$msg}}
									</div>
								{{end}}
								{{if .error}}
									<div class="ui error message">
										{{.error}}
									</div>
								{{end}}
							</div>
						</form>
					</div>
				</div>
			</div>
{{ end }}
`
