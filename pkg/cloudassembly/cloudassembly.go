// Package cloudassembly reads the parts of a synthesized cloud assembly needed to tell which construct
// libraries, and which versions of them, an app was built with.
package cloudassembly

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klothoplatform/cdk-notices/pkg/collectionutil"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	ManifestFile     = "manifest.json"
	DefaultTreeFile  = "tree.json"
	TreeArtifactType = "cdk:tree"
)

type (
	Manifest struct {
		Version   string              `json:"version"`
		Artifacts map[string]Artifact `json:"artifacts,omitempty"`
	}

	Artifact struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties,omitempty"`
	}

	TreeArtifactProperties struct {
		File string `mapstructure:"file"`
	}

	Tree struct {
		Version string `json:"version"`
		Root    *Node  `json:"tree"`
	}

	Node struct {
		ID            string           `json:"id"`
		Path          string           `json:"path"`
		Children      map[string]*Node `json:"children,omitempty"`
		ConstructInfo *ConstructInfo   `json:"constructInfo,omitempty"`
	}

	// ConstructInfo is the class a node was instantiated from.
	ConstructInfo struct {
		FQN     string `json:"fqn"`
		Version string `json:"version"`
	}

	Assembly struct {
		Dir      string
		Manifest *Manifest
		Tree     *Tree
	}
)

// Load reads the assembly in dir. The tree file is the one named by the manifest's tree artifact, or tree.json when
// the directory has no manifest or the manifest has no tree artifact.
func Load(dir string) (*Assembly, error) {
	asm := &Assembly{Dir: dir}

	treeFile := DefaultTreeFile
	manifest, err := LoadManifest(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		asm.Manifest = manifest
		file, err := manifest.TreeFile()
		if err != nil {
			return nil, err
		}
		if file != "" {
			treeFile = file
		}
	}

	asm.Tree, err = LoadTree(filepath.Join(dir, treeFile))
	if err != nil {
		return nil, err
	}
	return asm, nil
}

func LoadManifest(dir string) (*Manifest, error) {
	content, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(content, &manifest); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s in %s", ManifestFile, dir)
	}
	return &manifest, nil
}

// TreeFile returns the file named by the tree artifact, or "" if there isn't one.
func (m *Manifest) TreeFile() (string, error) {
	for _, name := range collectionutil.SortedKeys(m.Artifacts) {
		artifact := m.Artifacts[name]
		if artifact.Type != TreeArtifactType {
			continue
		}
		var props TreeArtifactProperties
		if err := mapstructure.Decode(artifact.Properties, &props); err != nil {
			return "", errors.Wrapf(err, "invalid properties for artifact %s", name)
		}
		return props.File, nil
	}
	return "", nil
}

func LoadTree(path string) (*Tree, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree Tree
	if err := json.Unmarshal(content, &tree); err != nil {
		return nil, errors.Wrapf(err, "could not parse construct tree %s", path)
	}
	if tree.Root == nil {
		return nil, errors.Errorf("construct tree %s has no root node", path)
	}
	return &tree, nil
}

// Constructs returns the construct info of every node in the tree, depth first with children in id order.
func (t *Tree) Constructs() []ConstructInfo {
	var infos []ConstructInfo
	var visit func(n *Node)
	visit = func(n *Node) {
		if n == nil {
			return
		}
		if n.ConstructInfo != nil && n.ConstructInfo.FQN != "" {
			infos = append(infos, *n.ConstructInfo)
		}
		for _, id := range collectionutil.SortedKeys(n.Children) {
			visit(n.Children[id])
		}
	}
	visit(t.Root)
	return infos
}

// ModuleNames returns the module prefixes of a fully-qualified construct name, each with its trailing dot:
//
//	aws-cdk-lib.aws_apigatewayv2.CfnStage -> [aws-cdk-lib. aws-cdk-lib.aws_apigatewayv2.]
func ModuleNames(fqn string) []string {
	var names []string
	for i, r := range fqn {
		if r == '.' && i > 0 {
			names = append(names, fqn[:i+1])
		}
	}
	return names
}

// UsedNames maps every construct fqn and module name in the tree to the versions it was seen with.
func (t *Tree) UsedNames() map[string][]string {
	used := make(map[string][]string)
	for _, info := range t.Constructs() {
		for _, name := range append([]string{info.FQN}, ModuleNames(info.FQN)...) {
			used[name] = collectionutil.FlattenUnique(used[name], []string{info.Version})
		}
	}
	for _, versions := range used {
		sort.Strings(versions)
	}
	return used
}

// Library returns the fqn prefix of a construct's library, e.g. `aws-cdk-lib` or `@aws-cdk/core`.
func (c ConstructInfo) Library() string {
	library, _, _ := strings.Cut(c.FQN, ".")
	return library
}

// FrameworkVersion returns the version of the core framework library the app was built with: aws-cdk-lib for v2
// apps, @aws-cdk/core for v1 apps. It returns "" if neither appears in the tree.
func (t *Tree) FrameworkVersion() string {
	for _, info := range t.Constructs() {
		switch info.Library() {
		case "aws-cdk-lib", "@aws-cdk/core":
			return info.Version
		}
	}
	return ""
}
