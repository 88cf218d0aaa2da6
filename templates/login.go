package templates

// Login asks for GIN credentials.  The token obtained with them is kept in
// the session store.
const Login = `
{{ define "content" }}
<div class="ui middle aligned center aligned grid">
	<div class="eight wide column">
		<form class="ui large form" action="/login" method="post">
			<div class="ui stacked segment">
				<h3 class="ui header">Sign in with your GIN account</h3>
				<div class="required field">
					<label for="username">Username or email</label>
					<input id="username" name="username" autocomplete="username" autofocus required>
				</div>
				<div class="required field">
					<label for="password">Password</label>
					<input id="password" name="password" type="password" autocomplete="current-password" required>
				</div>
				<button class="ui fluid large green submit button" type="submit">Sign in</button>
			</div>
		</form>
	</div>
</div>
{{ end }}
`
