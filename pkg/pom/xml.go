package pom

import "encoding/xml"

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Name         string          `xml:"name"`
	Description  string          `xml:"description"`
	URL          string          `xml:"url"`
	Parent       *pomParent      `xml:"parent"`
	Properties   pomElements     `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Modules      []string        `xml:"modules>module"`
	SCM          pomSCM          `xml:"scm"`
	Plugins      []pomPlugin     `xml:"build>plugins>plugin"`
}

type pomParent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
}

type pomSCM struct {
	URL        string `xml:"url"`
	Connection string `xml:"connection"`
}

type pomPlugin struct {
	GroupID       string      `xml:"groupId"`
	ArtifactID    string      `xml:"artifactId"`
	Version       string      `xml:"version"`
	Configuration pomElements `xml:"configuration"`
}

// pomElements captures arbitrary simple child elements such as
// <properties> entries or plugin <configuration> values.
type pomElements struct {
	Entries []pomElement `xml:",any"`
}

type pomElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}
