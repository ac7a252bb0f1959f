// Package nsp fetches Layer 2 topology data from a Nokia Network Services
// Platform (NSP).
//
// # Overview
//
// NSP exposes its network model over RESTCONF using the IETF network
// topology data model. This package handles the full exchange: it obtains a
// bearer token from the REST gateway with HTTP Basic credentials, retrieves
// the requested network, parses the IETF document into a
// [topo.RawTopology], and revokes the token again. NSP caps the number of
// concurrent auth clients, so revocation runs on every exit path, including
// failed fetches.
//
// # Usage
//
//	client, err := nsp.New(nsp.Config{
//	    Server:   "nsp.example.com",
//	    Username: "admin",
//	    Password: "secret",
//	    Insecure: true,
//	})
//	if err != nil {
//	    return err
//	}
//	raw, err := client.FetchTopology(ctx)
//
// Callers that need several requests per login manage the session
// themselves:
//
//	sess, err := client.Login(ctx)
//	if err != nil {
//	    return err
//	}
//	defer sess.Revoke(ctx)
//
// # Wire Format
//
// Responses follow the ietf-network and ietf-l2-topology models as NSP
// ships them: nodes carry L2 attributes (display name, management
// addresses) and termination points, links carry source and destination
// references. LAG membership comes from termination point attributes.
// Breakout parentage is inferred from connector-style port names such as
// "1/1/c3/2" because the export does not state it. Links without reference
// containers fall back to the vendor link name of the form
// "nodeA:port--nodeB:port".
package nsp
