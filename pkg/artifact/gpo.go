// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"encoding/xml"
	"fmt"

	"hardenctl/pkg/control"
)

const (
	// gpoIdentifierPrefix is the fixed GUID prefix; the final segment
	// is the generation timestamp at minute precision, so two bundles
	// generated in the same minute share an identifier.
	gpoIdentifierPrefix = "12345678-1234-5678-9012"
	// DefaultGPODomain is used when no domain is configured.
	DefaultGPODomain = "example.com"
	// blockedHandlerClass is the handler class associated with blocked
	// extensions. It carries no open command, so Windows has nothing
	// to execute for files of that type.
	blockedHandlerClass = "Blocked.File"
)

// gpoDocument is the root of the Group Policy XML representation.
type gpoDocument struct {
	XMLName    xml.Name    `xml:"GroupPolicyObject"`
	Identifier string      `xml:"Identifier"`
	Domain     string      `xml:"Domain"`
	Name       string      `xml:"Name"`
	Computer   gpoComputer `xml:"Computer"`
}

type gpoComputer struct {
	Enabled    string        `xml:"Enabled"`
	Extensions gpoExtensions `xml:"ExtensionData"`
}

type gpoExtensions struct {
	Registry *gpoRegistryExtension `xml:"Registry,omitempty"`
	Firewall *gpoFirewallExtension `xml:"WindowsDefenderFirewall,omitempty"`
}

type gpoRegistryExtension struct {
	Policies []gpoPolicy `xml:"Policy"`
}

type gpoPolicy struct {
	State     string `xml:"State,attr"`
	Key       string `xml:"Key,attr"`
	ValueName string `xml:"ValueName,attr"`
	Value     string `xml:"Value,attr"`
	Comment   string `xml:"Comment,attr,omitempty"`
}

type gpoFirewallExtension struct {
	Rules []gpoOutboundRule `xml:"OutboundRule"`
}

type gpoOutboundRule struct {
	Action  string `xml:"Action,attr"`
	Program string `xml:"Program,attr"`
	Name    string `xml:"Name,attr"`
}

// GPOGenerator renders a Group Policy Object XML document. It only
// understands file associations and firewall rules; other setting
// keys have no Group Policy representation here and are left to the
// script-based formats.
type GPOGenerator struct {
	// Domain is the Active Directory domain recorded in the document.
	// Empty means DefaultGPODomain.
	Domain string
}

func (g *GPOGenerator) Format() FormatID  { return FormatGPO }
func (g *GPOGenerator) Label() string     { return "GPO" }
func (g *GPOGenerator) Extension() string { return "xml" }
func (g *GPOGenerator) MIMEType() string  { return "text/xml" }

func (g *GPOGenerator) SupportedKeys() []control.Key {
	return []control.Key{control.KeyFileAssociations, control.KeyFirewallRules}
}

func (g *GPOGenerator) Generate(req Request) (string, error) {
	domain := g.Domain
	if domain == "" {
		domain = DefaultGPODomain
	}

	doc := gpoDocument{
		Identifier: fmt.Sprintf("{%s-%s}", gpoIdentifierPrefix, req.Now.Format("200601021504")),
		Domain:     domain,
		Name:       req.ControlName,
		Computer: gpoComputer{
			Enabled: "true",
		},
	}

	if req.Settings.Has(control.KeyFileAssociations) {
		reg := &gpoRegistryExtension{}
		for _, assoc := range req.Settings.FileAssociations {
			policy := gpoPolicy{
				State:     "Enabled",
				Key:       `HKEY_CLASSES_ROOT\` + assoc.Extension,
				ValueName: "",
				Value:     assoc.Application,
			}
			if assoc.Application == control.BlockSentinel {
				policy.Value = blockedHandlerClass
				policy.Comment = "Blocks execution: handler class has no open command"
			}
			reg.Policies = append(reg.Policies, policy)
		}
		doc.Computer.Extensions.Registry = reg
	}

	if req.Settings.Has(control.KeyFirewallRules) {
		fw := &gpoFirewallExtension{}
		for _, rule := range req.Settings.FirewallRules {
			fw.Rules = append(fw.Rules, gpoOutboundRule{
				Action:  "Block",
				Program: rule.ProgramPath,
				Name:    rule.RuleName,
			})
		}
		doc.Computer.Extensions.Firewall = fw
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling group policy document: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}
