package templates

// Layout is the main site template. It wraps the "content" block of every
// page with the navigation bar and the footer.
var Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<link rel="shortcut icon" href="https://gindata.biologie.hu-berlin.de/img/favicon.png" />
		<link rel="stylesheet" href="/assets/semantic-2.3.1.min.css">
		<link rel="stylesheet" href="/assets/nestform.css">
		<title>GIN forms</title>
	</head>
	<body>
		<div class="full height">
			<nav class="ui top secondary pointing menu">
				<div class="ui container">
					<a class="item brand" href="/">
						<img class="ui mini image" src="https://gindata.biologie.hu-berlin.de/img/favicon.png" alt="GIN">
					</a>
					<a class="item" href="/">New submission</a>
					<a class="item" href="/log">Submissions</a>
					<div class="right menu">
						<a class="item" href="/logout">Sign out</a>
					</div>
				</div>
			</nav>
			<main class="ui container">
				{{ template "content" . }}
			</main>
		</div>
		<footer class="ui vertical footer segment">
			<div class="ui center aligned container footertext">
				© nestform team 2026
				<a href="https://gindata.biologie.hu-berlin.de/G-Node/Info/wiki/imprint">Imprint</a>
				<a href="https://gindata.biologie.hu-berlin.de/G-Node/Info/wiki/Datenschutz">Datenschutz</a>
			</div>
		</footer>
	</body>
</html>
{{ end }}
`
