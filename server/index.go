package server

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Configuration to Excel</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; }
textarea { width: 100%; height: 20em; font-family: monospace; }
fieldset { margin-bottom: 1em; }
</style>
</head>
<body>
<h1>Configuration to Excel</h1>
<form id="convert" method="post" action="/convert" enctype="multipart/form-data">
<fieldset>
<legend>Upload a .cfg file</legend>
<input type="file" id="file-upload" name="file" accept=".cfg,.ini,.conf,.txt">
</fieldset>
<fieldset>
<legend>or paste the configuration</legend>
<textarea id="cfg-textarea" name="cfg" placeholder="[section]&#10;key=value"></textarea>
</fieldset>
<label>Charset
<select name="charset">
<option value="utf-8">UTF-8</option>
<option value="windows-1252">Windows-1252</option>
<option value="latin1">ISO-8859-1</option>
<option value="cp850">CP850</option>
</select>
</label>
<button type="submit" id="generate-excel-btn" disabled>Generate Excel</button>
<button type="reset" id="reset-btn" disabled>Reset</button>
</form>
<script>
(function () {
  var file = document.getElementById("file-upload");
  var text = document.getElementById("cfg-textarea");
  var generate = document.getElementById("generate-excel-btn");
  var reset = document.getElementById("reset-btn");

  file.addEventListener("change", function () {
    var selected = file.files.length > 0;
    text.disabled = selected;
    generate.disabled = !selected;
    reset.disabled = false;
  });
  text.addEventListener("input", function () {
    var filled = text.value.trim() !== "";
    file.disabled = filled;
    generate.disabled = !filled;
    reset.disabled = false;
  });
  document.getElementById("convert").addEventListener("reset", function () {
    file.disabled = false;
    text.disabled = false;
    generate.disabled = true;
    reset.disabled = true;
  });
})();
</script>
</body>
</html>
`
