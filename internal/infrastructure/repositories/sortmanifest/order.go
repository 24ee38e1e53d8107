package sortmanifest

// fieldOrder is the conventional package.json field order. Keys not listed
// here follow it in alphabetical order.
func fieldOrder() []string {
	return []string{
		"$schema",
		"name",
		"displayName",
		"version",
		"private",
		"description",
		"categories",
		"keywords",
		"homepage",
		"bugs",
		"repository",
		"funding",
		"license",
		"qna",
		"author",
		"maintainers",
		"contributors",
		"publisher",
		"sideEffects",
		"type",
		"imports",
		"exports",
		"main",
		"svelte",
		"umd:main",
		"jsdelivr",
		"unpkg",
		"module",
		"source",
		"jsnext:main",
		"browser",
		"react-native",
		"types",
		"typesVersions",
		"typings",
		"style",
		"example",
		"examplestyle",
		"assets",
		"bin",
		"man",
		"directories",
		"files",
		"workspaces",
		"binary",
		"scripts",
		"betterScripts",
		"contributes",
		"activationEvents",
		"husky",
		"simple-git-hooks",
		"pre-commit",
		"commitlint",
		"lint-staged",
		"nano-staged",
		"config",
		"nodemonConfig",
		"browserify",
		"babel",
		"browserslist",
		"xo",
		"prettier",
		"eslintConfig",
		"eslintIgnore",
		"npmpkgjsonlint",
		"npmPackageJsonLintConfig",
		"npmpackagejsonlint",
		"release",
		"remarkConfig",
		"stylelint",
		"ava",
		"jest",
		"mocha",
		"nyc",
		"c8",
		"tap",
		"oclif",
		"resolutions",
		"dependencies",
		"devDependencies",
		"dependenciesMeta",
		"peerDependencies",
		"peerDependenciesMeta",
		"optionalDependencies",
		"bundledDependencies",
		"bundleDependencies",
		"extensionPack",
		"extensionDependencies",
		"flat",
		"packageManager",
		"engines",
		"engineStrict",
		"volta",
		"languageName",
		"os",
		"cpu",
		"preferGlobal",
		"publishConfig",
		"icon",
		"badges",
		"galleryBanner",
		"preview",
		"markdown",
		"pnpm",
	}
}

// sortedMaps are fields whose own keys are sorted alphabetically.
func sortedMaps() map[string]bool {
	return map[string]bool{
		"dependencies":         true,
		"devDependencies":      true,
		"dependenciesMeta":     true,
		"peerDependencies":     true,
		"peerDependenciesMeta": true,
		"optionalDependencies": true,
		"resolutions":          true,
		"engines":              true,
		"publishConfig":        true,
		"directories":          true,
		"bin":                  true,
		"typesVersions":        true,
		"volta":                true,
	}
}
